package newsapi

// Option is a selectable value with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Categories are the top-headlines categories offered to readers.
var Categories = []Option{
	{Value: "general", Label: "General"},
	{Value: "business", Label: "Business"},
	{Value: "technology", Label: "Technology"},
	{Value: "entertainment", Label: "Entertainment"},
	{Value: "health", Label: "Health"},
	{Value: "science", Label: "Science"},
	{Value: "sports", Label: "Sports"},
}

// Sources are the upstream source ids offered to readers.
var Sources = []Option{
	{Value: "bbc-news", Label: "BBC News"},
	{Value: "cnn", Label: "CNN"},
	{Value: "reuters", Label: "Reuters"},
	{Value: "al-jazeera-english", Label: "Al Jazeera"},
	{Value: "the-verge", Label: "The Verge"},
	{Value: "techcrunch", Label: "TechCrunch"},
	{Value: "espn", Label: "ESPN"},
}
