package denylist

// DefaultPatterns contains the built-in vague variance phrases.
// A variance value that only restates one of these does not enumerate
// what may actually differ in the response.
var DefaultPatterns = Patterns{
	Phrases: []string{
		"some flexibility",
		"some variance",
		"some variation",
		"minor variations",
		"minor deviations",
		"reasonable variance",
		"reasonable flexibility",
		"within reason",
		"as needed",
		"as appropriate",
		"as you see fit",
		"use your judgment",
		"use your judgement",
		"flexible",
		"tbd",
		"to be determined",
	},
}
