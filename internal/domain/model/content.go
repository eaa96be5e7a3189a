package model

// ContentView selects which rendition of a page is shown.
type ContentView string

const (
	ViewOriginal     ContentView = "original"
	ViewPersonalized ContentView = "personalized"
	ViewTranslated   ContentView = "translated"
)
