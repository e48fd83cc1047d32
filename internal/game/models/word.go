package models

// Word is a quiz vocabulary entry served to active game participants.
type Word struct {
	ID              int64           `json:"id"`
	Word            string          `json:"word"`
	Language        string          `json:"language"`
	DifficultyLevel int             `json:"difficulty_level"`
	Sentences       []*WordSentence `json:"sentences"`
}

// WordSentence is an example sentence attached to a word.
type WordSentence struct {
	ID       int64  `json:"id"`
	WordID   int64  `json:"word_id"`
	Sentence string `json:"sentence"`
}
