package metadata

const schemaFilename = "metadata.schema.cue"

// schemaSource constrains every descriptor file before merging. Unknown
// keys are allowed.
const schemaSource = `
#Type: "id" | "string" | "text" | "html" | "url" | "email" | "password" |
	"number" | "integer" | "boolean" | "date" | "datetime" | "object"

#Property: {
	type?:     #Type
	label?:    string
	required?: bool
	l10n?:     bool
	multiple?: bool
	fields?: [...string & !=""]
	...
}

#Metadata: {
	extends?: [...string & !=""]
	label?:   string
	table?:   string & =~"^[A-Za-z_][A-Za-z0-9_]*$"
	key?:     string & !=""
	properties?: [string]: #Property
	...
}
`
