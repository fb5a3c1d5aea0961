package answer

// SystemPrompt frames the generator as a blog assistant
const SystemPrompt = `You are a helpful assistant that answers questions using provided blog articles as context.`

// userPromptTemplate wraps the rendered context blocks and the question.
// Arguments: context, question.
const userPromptTemplate = `You are an expert assistant. Use the following blog articles as context to answer the user's question. Reference the articles by their [number] and include the URL in your answer when relevant.

Context:
%s
User question: %s

Answer (be concise, relevant, and include reference links):`

// documentBlockTemplate renders one numbered context document.
// Arguments: index, title, author, date, tags, url, content prefix.
const documentBlockTemplate = "[%d] Title: %s\nAuthor: %s\nDate: %s\nTags: %s\nURL: %s\nContent: %s...\n\n"
