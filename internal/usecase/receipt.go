package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const maxBareReceiptQuantity = 99

var (
	// "x2", "×2", "*2", "X 2" ("150円x2" holatini ham qamraydi)
	receiptMultiplierRe = regexp.MustCompile(`(?i)(?:^|[^a-z])[x×*]\s*(\d+)`)
	// "2個", "3点", "2pcs"
	receiptCounterRe = regexp.MustCompile(`(?i)(\d+)\s*(?:個|点|本|袋|箱|コ|パック|缶|枚|pcs|pc)`)
)

// foldReceiptText maps full-width ASCII/digits to half-width and half-width
// katakana to full-width so OCR output and sheet names compare equal.
// NFC recombines the voiced marks that half-width katakana carries separately.
func foldReceiptText(s string) string {
	return norm.NFC.String(width.Fold.String(s))
}

// MatchReceiptLine finds the first known name contained in line. Quantity is
// the first quantity token of the line, default 1.
func MatchReceiptLine(line string, knownNames []string) (entity.ReceiptMatch, bool) {
	folded := strings.ToLower(foldReceiptText(line))
	if strings.TrimSpace(folded) == "" {
		return entity.ReceiptMatch{}, false
	}
	for _, name := range knownNames {
		needle := strings.ToLower(foldReceiptText(strings.TrimSpace(name)))
		if needle == "" {
			continue
		}
		idx := strings.Index(folded, needle)
		if idx < 0 {
			continue
		}
		rest := folded[:idx] + " " + folded[idx+len(needle):]
		return entity.ReceiptMatch{
			Name:     strings.TrimSpace(name),
			Quantity: parseReceiptQuantity(rest),
			Line:     strings.TrimSpace(line),
		}, true
	}
	return entity.ReceiptMatch{}, false
}

func parseReceiptQuantity(s string) int {
	if m := receiptMultiplierRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := receiptCounterRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	for _, tok := range strings.Fields(s) {
		if !isAllDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err == nil && n > 0 && n <= maxBareReceiptQuantity {
			return n
		}
	}
	return 1
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MatchReceipt runs MatchReceiptLine over every line of recognized text.
// Table names are tried before catalog aliases; quantities of repeated items
// are summed and the result keeps first-seen order.
func MatchReceipt(text string, knownNames []string, aliases [][2]string) []entity.ReceiptMatch {
	aliasKeys := make([]string, 0, len(aliases))
	aliasTarget := make(map[string]string, len(aliases))
	for _, pair := range aliases {
		aliasKeys = append(aliasKeys, pair[0])
		aliasTarget[strings.TrimSpace(pair[0])] = pair[1]
	}

	var out []entity.ReceiptMatch
	index := make(map[string]int)
	for _, line := range strings.Split(text, "\n") {
		m, ok := MatchReceiptLine(line, knownNames)
		if !ok && len(aliasKeys) > 0 {
			if am, aok := MatchReceiptLine(line, aliasKeys); aok {
				am.Name = aliasTarget[am.Name]
				m, ok = am, true
			}
		}
		if !ok {
			continue
		}
		key := normalizeKey(m.Name)
		if i, seen := index[key]; seen {
			out[i].Quantity += m.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}
	return out
}
