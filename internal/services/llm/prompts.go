package llm

const translateSystemPrompt = "You are a helpful assistant whose task is to translate text from Russian to English."

const translateUserPrompt = `You will be given text in the format "Speaker <X>: <transcribed_speech>".
Your response will only change the language of the <transcribed_speech>.
You MUST keep one line per input line in the existing format and do not add any other modifications.
Here is the text:
`

const summarySystemPrompt = "You are a helpful assistant whose task is to summarize text. Be concise and use a maximum of 6 sentences."

const summaryUserPrompt = `Return ONLY the summarized text. Here is the original text:
`

const healthSystemPrompt = "You must respond with JSON only."

const healthUserPrompt = `Respond with {"ok":true}`
