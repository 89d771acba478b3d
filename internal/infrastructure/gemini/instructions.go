package gemini

// noTextMarker the model's answer when the image has nothing legible.
const noTextMarker = "NO_TEXT"

// ReceiptInstruction system instruction: faqat matnni ko'chirish, tahlil yo'q
const ReceiptInstruction = `You transcribe Japanese shop receipts.

RULES:
- Output the receipt text exactly as printed, one printed line per output line.
- Keep item names, quantities (x2, 2個, 2点) and prices (150円, ¥150) on the same line as printed.
- Do not translate, summarise, total, or correct anything.
- Do not add commentary, headings, or markdown.
- If the image contains no legible text, output exactly: NO_TEXT`

// ReceiptPrompt har bir rasm bilan yuboriladigan so'rov
const ReceiptPrompt = "Transcribe every line of this receipt."
