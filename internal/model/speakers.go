package model

// SpeakerMap lists the named speakers the custom-voice models ship
// with, grouped by language.
var speakerMap = map[string][]string{
	"English":  {"Ryan", "Aiden", "Ethan", "Chelsie", "Serena", "Vivian"},
	"Chinese":  {"Vivian", "Serena", "Uncle_Fu", "Dylan", "Eric"},
	"Japanese": {"Ono_Anna"},
	"Korean":   {"Sohee"},
}

// speakerLanguages fixes the listing order; map iteration order would
// shuffle the menu between runs.
var speakerLanguages = []string{"English", "Chinese", "Japanese", "Korean"}

// Speakers returns all speaker names in a stable order, with duplicates
// across languages removed.
func Speakers() []string {
	seen := make(map[string]struct{})

	var names []string

	for _, language := range speakerLanguages {
		for _, name := range speakerMap[language] {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}

			names = append(names, name)
		}
	}

	return names
}

// IsSupportedSpeaker reports whether name is a known custom-voice speaker.
func IsSupportedSpeaker(name string) bool {
	for _, candidate := range Speakers() {
		if candidate == name {
			return true
		}
	}

	return false
}
