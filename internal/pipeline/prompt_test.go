package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptEmbedsAllBlocks(t *testing.T) {
	blocks := []string{
		"[5/5] Great: does the thing",
		"[1/5] Broken: crashes on launch",
		"[3/5] Meh: fine I guess",
	}

	system, user := BuildPrompt(blocks)

	assert.NotEmpty(t, system)
	for _, b := range blocks {
		assert.Contains(t, user, b)
	}
	// Blocks joined by blank lines, in order.
	assert.Contains(t, user, blocks[0]+"\n\n"+blocks[1]+"\n\n"+blocks[2])
}

func TestBuildPromptContract(t *testing.T) {
	system, user := BuildPrompt([]string{"[4/5] a: b"})

	assert.Contains(t, system, "JSON")
	assert.Contains(t, user, `"themes"`)
	assert.Contains(t, user, `"prioritizedThemes"`)
	assert.Contains(t, user, "3 to 5 themes")
	assert.Contains(t, user, `"High" | "Medium" | "Low"`)
	assert.Contains(t, user, "verbatim")
}

func TestBuildPromptEmptyCorpus(t *testing.T) {
	// An empty reduction still yields a well-formed prompt; sending it is
	// policy, not a fault.
	_, user := BuildPrompt(nil)
	assert.True(t, strings.HasPrefix(user, userPromptHeader))
}

func TestBuildPromptDeterministic(t *testing.T) {
	blocks := []string{"[2/5] x: y", "[5/5] z: w"}
	s1, u1 := BuildPrompt(blocks)
	s2, u2 := BuildPrompt(blocks)
	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
}
