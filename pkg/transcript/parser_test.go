package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap-cli/pkg/timestamp"
)

func TestParse_BasicWebVTT(t *testing.T) {
	raw := "WEBVTT\n\n00:00:05.000 --> 00:00:10.000\n<v John>Hello everyone.\n\n00:00:10.000 --> 00:00:15.000\nWe will discuss the roadmap."

	cues := Parse(raw)
	require.Len(t, cues, 2)

	assert.Equal(t, "00:00:05", cues[0].Start)
	assert.Equal(t, "00:00:10", cues[0].End)
	assert.Equal(t, "John", cues[0].Speaker)
	assert.Equal(t, "Hello everyone.", cues[0].Text)

	assert.Equal(t, "00:00:10", cues[1].Start)
	assert.Empty(t, cues[1].Speaker)
	assert.Equal(t, "We will discuss the roadmap.", cues[1].Text)
}

func TestParse_EmptyAndGarbageInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n\n  "))
	assert.Empty(t, Parse("this is not a cue track at all\njust prose"))
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{
		"-->",
		"00:00 --> ",
		"99:99:99.999 --> 00:00:00",
		"WEBVTT\n\n1\n00:00:01.000 -->\ntext without end",
		"\x00\x01\x02",
		"<v >empty tag</v>",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, "input %q", in)
	}
}

func TestParse_InlineSpeakerConvention(t *testing.T) {
	raw := "00:01:00 --> 00:01:05\nAlice Jones: We shipped the release."

	cues := Parse(raw)
	require.Len(t, cues, 1)
	assert.Equal(t, "Alice Jones", cues[0].Speaker)
	assert.Equal(t, "We shipped the release.", cues[0].Text)
}

func TestParse_IndexAndSeparatorLinesIgnored(t *testing.T) {
	raw := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nFirst line.\n\n2\n00:00:02.000 --> 00:00:03.000\n---\nSecond line."

	cues := Parse(raw)
	require.Len(t, cues, 2)
	assert.Equal(t, "First line.", cues[0].Text)
	assert.Equal(t, "Second line.", cues[1].Text)
}

func TestParse_MultiLineTextConcatenated(t *testing.T) {
	raw := "00:00:01 --> 00:00:05\nfirst part\nsecond part   \nthird part"

	cues := Parse(raw)
	require.Len(t, cues, 1)
	assert.Equal(t, "first part second part third part", cues[0].Text)
}

func TestParse_EmptyTextCueDropped(t *testing.T) {
	raw := "00:00:01 --> 00:00:02\n<v Ghost></v>\n\n00:00:03 --> 00:00:04\nreal content"

	cues := Parse(raw)
	require.Len(t, cues, 1)
	assert.Equal(t, "real content", cues[0].Text)
}

func TestParse_CommaFractionsAndMissingEnd(t *testing.T) {
	raw := "00:00:05,500 --> 00:00:07,900\ncomma style\n\n00:00:08 -->\nmissing end"

	cues := Parse(raw)
	require.Len(t, cues, 2)
	assert.Equal(t, "00:00:05", cues[0].Start)
	assert.Equal(t, "00:00:07", cues[0].End)
	assert.Equal(t, "missing end", cues[1].Text)
}

func TestParse_BoundaryClosesPreviousCueWithoutBlankLine(t *testing.T) {
	raw := "00:00:01 --> 00:00:02\nfirst\n00:00:03 --> 00:00:04\nsecond"

	cues := Parse(raw)
	require.Len(t, cues, 2)
	assert.Equal(t, "first", cues[0].Text)
	assert.Equal(t, "second", cues[1].Text)
}

func TestParse_NonDecreasingStartOrder(t *testing.T) {
	raw := "00:10:00 --> 00:10:05\nlater\n\n00:01:00 --> 00:01:05\nearlier"

	cues := Parse(raw)
	require.Len(t, cues, 2)
	for i := 1; i < len(cues); i++ {
		assert.LessOrEqual(t,
			timestamp.ToSeconds(cues[i-1].Start),
			timestamp.ToSeconds(cues[i].Start))
	}
}

func TestParse_StripsStylingTags(t *testing.T) {
	raw := "00:00:01 --> 00:00:02\n<c.colorE5E5E5>styled</c> and <i>italic</i> text"

	cues := Parse(raw)
	require.Len(t, cues, 1)
	assert.Equal(t, "styled and italic text", cues[0].Text)
}

func TestFlatten(t *testing.T) {
	cues := []Cue{
		{Start: "00:00:05", Text: "Hello everyone.", Speaker: "John"},
		{Start: "00:00:10", Text: "We will discuss the roadmap."},
	}

	got := Flatten(cues)
	assert.Equal(t, "00:00:05 John: Hello everyone.\n00:00:10 We will discuss the roadmap.", got)
	assert.Empty(t, Flatten(nil))
}

func TestSpeakers(t *testing.T) {
	cues := []Cue{
		{Start: "00:00:01", Speaker: "Alice", Text: "a"},
		{Start: "00:00:02", Speaker: "Bob", Text: "b"},
		{Start: "00:00:03", Speaker: "Alice", Text: "c"},
		{Start: "00:00:04", Text: "d"},
	}
	assert.Equal(t, []string{"Alice", "Bob"}, Speakers(cues))
}
