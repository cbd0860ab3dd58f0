package models

// Line markers shared by the prompt template and the response parser. Each
// marker starts its own line in the model output.
const (
	MarkerName        = "- Assessment Name:"
	MarkerTestType    = "- Test Type:"
	MarkerDescription = "- Description:"
	MarkerKeyFeatures = "- Key Features:"
	MarkerDuration    = "- Duration:"
	MarkerRemote      = "- Remote Testing Support:"
	MarkerAdaptive    = "- Adaptive/IRT Support:"
	MarkerURL         = "- URL:"

	ContextSeparator = "\n\n"
	ThinkTag         = `(?s)<think>.*?</think>`
)

// Catalog column headers.
const (
	ColumnName        = "Assessment Name"
	ColumnDescription = "Description"
	ColumnJobLevels   = "Job Levels"
	ColumnTestType    = "Test Type"
	ColumnLength      = "Assessment Length"
	ColumnRemote      = "Remote Testing"
	ColumnAdaptive    = "Adaptive / IRT"
	ColumnURL         = "URL"
)

// Defaults applied to empty catalog and parsed fields.
const (
	DefaultJobLevel    = "General"
	DefaultTestType    = "General Assessment"
	DefaultYesNo       = "No"
	DefaultDuration    = "N/A"
	DefaultDescription = "No description available"
)

var (
	RequiredColumns = []string{
		ColumnName,
		ColumnDescription,
		ColumnJobLevels,
		ColumnTestType,
		ColumnLength,
		ColumnRemote,
		ColumnAdaptive,
		ColumnURL,
	}

	// RecommendPromptTemplate takes the retrieved context and the question.
	RecommendPromptTemplate = `You are an SHL assessment expert. Use this context:
%s

Question: %s
Answer in this format, one block per recommended assessment:
` + MarkerName + ` [name]
` + MarkerTestType + ` [type]
` + MarkerDescription + ` [detailed description]
` + MarkerKeyFeatures + ` [key features]
` + MarkerDuration + ` [length in minutes]
` + MarkerRemote + ` [Yes/No]
` + MarkerAdaptive + ` [Yes/No]
` + MarkerURL + ` [link]
`

	// StructuredPromptTemplate asks for a JSON document instead of marker lines.
	StructuredPromptTemplate = `You are an SHL assessment expert. Use this context:
%s

Question: %s
Recommend the assessments from the context that best match the question.
Return only a JSON object of the form
{"assessments": [{"name": string, "test_type": string, "description": string, "key_features": string, "duration": string, "remote_testing": "Yes"|"No", "adaptive": "Yes"|"No", "url": string}]}
Do not include explanations, markdown, or text before or after the JSON.
`
)
