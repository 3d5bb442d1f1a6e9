// Package corpus provides the built-in quote corpus, YAML corpus files, and
// a hot-reloading corpus source.
package corpus

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quotable-io/quotable/internal/models"
)

// Seed returns the built-in corpus: 24 inspirational quotes across five
// categories.
func Seed() []models.QuoteInput {
	return []models.QuoteInput{
		// Importance of Education
		{Text: "Education is the most powerful weapon which you can use to change the world. – Nelson Mandela", Category: "Importance of Education"},
		{Text: "The only person who is educated is the one who has learned how to learn and change. – Carl Rogers", Category: "Importance of Education"},
		{Text: "An investment in knowledge pays the best interest. – Benjamin Franklin", Category: "Importance of Education"},
		{Text: "Education is not the filling of a pail, but the lighting of a fire. – William Butler Yeats", Category: "Importance of Education"},
		{Text: "The roots of education are bitter, but the fruit is sweet. – Aristotle", Category: "Importance of Education"},

		// Being Kind to Others
		{Text: "No act of kindness, no matter how small, is ever wasted. – Aesop", Category: "Being Kind to Others"},
		{Text: "Kindness is a language which the deaf can hear and the blind can see. – Mark Twain", Category: "Being Kind to Others"},
		{Text: "Carry out a random act of kindness, with no expectation of reward, safe in the knowledge that one day someone might do the same for you. – Princess Diana", Category: "Being Kind to Others"},
		{Text: "A single act of kindness throws out roots in all directions, and the roots spring up and make new trees. – Amelia Earhart", Category: "Being Kind to Others"},

		// Contributing to Others
		{Text: "The best way to find yourself is to lose yourself in the service of others. – Mahatma Gandhi", Category: "Contributing to Others"},
		{Text: "We make a living by what we get. We make a life by what we give. – Winston Churchill", Category: "Contributing to Others"},
		{Text: "No one has ever become poor by giving. – Anne Frank", Category: "Contributing to Others"},
		{Text: "The meaning of life is to find your gift. The purpose of life is to give it away. – Pablo Picasso", Category: "Contributing to Others"},
		{Text: "Only a life lived for others is a life worthwhile. – Albert Einstein", Category: "Contributing to Others"},

		// Hard Work
		{Text: "There is no substitute for hard work. – Thomas Edison", Category: "Hard Work"},
		{Text: "The only place where success comes before work is in the dictionary. – Vidal Sassoon", Category: "Hard Work"},
		{Text: "I'm a greater believer in luck, and I find the harder I work the more I have of it. – Thomas Jefferson", Category: "Hard Work"},
		{Text: "Success is not the result of spontaneous combustion. You must set yourself on fire. – Arnold H. Glasow", Category: "Hard Work"},
		{Text: "Hard work beats talent when talent doesn't work hard. – Tim Notke", Category: "Hard Work"},

		// Overcoming Failure
		{Text: "Failure is simply the opportunity to begin again, this time more intelligently. – Henry Ford", Category: "Overcoming Failure"},
		{Text: "Success is not final, failure is not fatal: It is the courage to continue that counts. – Winston Churchill", Category: "Overcoming Failure"},
		{Text: "Our greatest glory is not in never falling, but in rising every time we fall. – Confucius", Category: "Overcoming Failure"},
		{Text: "The only real mistake is the one from which we learn nothing. – Henry Ford", Category: "Overcoming Failure"},
		{Text: "I have not failed. I've just found 10,000 ways that won't work. – Thomas Edison", Category: "Overcoming Failure"},
	}
}

type corpusFile struct {
	Quotes []models.QuoteInput `yaml:"quotes"`
}

// LoadFile reads a YAML corpus file of the form:
//
//	quotes:
//	  - text: "..."
//	    category: "..."
//
// Every entry must have a non-empty text and category.
func LoadFile(path string) ([]models.QuoteInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(f.Quotes) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no quotes", path)
	}
	for i, q := range f.Quotes {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("corpus file %s: quote %d has empty text", path, i)
		}
		if strings.TrimSpace(q.Category) == "" {
			return nil, fmt.Errorf("corpus file %s: quote %d has empty category", path, i)
		}
	}
	return f.Quotes, nil
}
