package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two?!", "three"}, Split("One. Two?! three"))
	assert.Empty(t, Split("   "))
}

func TestExcerpt_KeepsOrderAndLimit(t *testing.T) {
	e := NewExcerpter()
	plot := "A crew drifts in orbit. The crew hears a signal. Nobody sleeps. The signal grows louder and the crew panics."

	got := e.Excerpt(plot, "", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "The crew hears a signal.", got[0].Text)
	assert.Equal(t, "The signal grows louder and the crew panics.", got[1].Text)
	for _, s := range got {
		assert.False(t, s.Focus)
	}
}

func TestExcerpt_FocusWins(t *testing.T) {
	e := NewExcerpter()
	plot := "A crew drifts in orbit. The crew hears a signal. A cat naps on the console."

	got := e.Excerpt(plot, "sleepy cat", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "A cat naps on the console.", got[0].Text)
	assert.True(t, got[0].Focus)
}

func TestExcerpt_Defaults(t *testing.T) {
	e := NewExcerpter()
	assert.Nil(t, e.Excerpt("", "x", 3))

	got := e.Excerpt("First. Second. Third.", "", 0)
	assert.Len(t, got, DefaultMaxSentences)
	assert.Equal(t, "First. Second.", Join(got))
}
