package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectorCorrect(t *testing.T) {
	c := NewCorrector()

	t.Run("Collapses Whitespace", func(t *testing.T) {
		got := c.Correct("hello    world   again")
		assert.Equal(t, "Hello world again.", got)
	})

	t.Run("Removes Filler Sounds", func(t *testing.T) {
		got := c.Correct("so um this is uh the plan er okay")
		assert.NotContains(t, " "+got+" ", " um ")
		assert.NotContains(t, " "+got+" ", " uh ")
		assert.NotContains(t, " "+got+" ", " er ")
	})

	t.Run("Uppercases Lone I", func(t *testing.T) {
		got := c.Correct("i think i should go")
		assert.Contains(t, got, "I think I should go")
	})

	t.Run("Adds Terminal Punctuation To Long Lines", func(t *testing.T) {
		got := c.Correct("this line looks like a sentence")
		assert.Equal(t, "This line looks like a sentence.", got)
	})

	t.Run("Short Lines Left Unpunctuated", func(t *testing.T) {
		got := c.Correct("hi there")
		assert.Equal(t, "Hi there", got)
	})

	t.Run("Capitalizes After Sentence End", func(t *testing.T) {
		got := c.Correct("first sentence is here. second one follows now")
		assert.Equal(t, "First sentence is here. Second one follows now.", got)
	})

	t.Run("Idempotent On Clean Input", func(t *testing.T) {
		clean := "This is already correct. Nothing should change here."
		assert.Equal(t, clean, c.Correct(clean))
		assert.Equal(t, clean, c.Correct(c.Correct(clean)))
	})

	t.Run("Empty Input Returned Unchanged", func(t *testing.T) {
		assert.Equal(t, "", c.Correct(""))
		assert.Equal(t, "   ", c.Correct("   "))
	})
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc123", true},
		{"https://music.youtube.com/watch?v=abc", true},
		{"https://YOUTU.BE/abc", true},
		{"https://vimeo.com/12345", false},
		{"https://notyoutube.com/watch", false},
		{"https://youtube.com.evil.example/watch", false},
		{"not a url at all", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsYouTubeURL(tt.url), tt.url)
	}
}
