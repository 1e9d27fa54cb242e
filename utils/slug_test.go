package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Course Talk":        "course-talk",
		"  Fall  2026!  ":    "fall-2026",
		"C++ & Go":           "c-go",
		"already-a-slug":     "already-a-slug",
		"---":                "",
		"Événements du jour": "v-nements-du-jour",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("course-talk"))
	assert.True(t, ValidSlug("a1"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("Course-Talk"))
	assert.False(t, ValidSlug("double--hyphen"))
	assert.False(t, ValidSlug("-leading"))
	assert.False(t, ValidSlug("trailing-"))
}
