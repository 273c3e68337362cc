package murmur_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/murmur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedRunes feeds text one rune at a time and returns every unit plus the
// flushed remainder.
func feedRunes(s *murmur.Segmenter, text string) []string {
	var units []string
	for _, r := range text {
		units = append(units, s.Feed(string(r))...)
	}
	if rest, ok := s.Flush(); ok {
		units = append(units, rest)
	}
	return units
}

func feedAll(s *murmur.Segmenter, text string) []string {
	units := s.Feed(text)
	if rest, ok := s.Flush(); ok {
		units = append(units, rest)
	}
	return units
}

func TestSegmenter_FullWidthSentences(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	units := s.Feed("今天天气很好。明天呢？")
	assert.Equal(t, []string{"今天天气很好。", "明天呢？"}, units)
	assert.Empty(t, s.Buffered())
}

func TestSegmenter_NewlineEndsUnit(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	assert.Equal(t, []string{"first line\n"}, s.Feed("first line\nsecond"))
	assert.Equal(t, "second", s.Buffered())
}

func TestSegmenter_OpenFenceYieldsNothing(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	assert.Empty(t, s.Feed("```python\nprint(1)\n"))
	assert.Empty(t, s.Feed("print(2)。\n"))
	assert.Equal(t, "```python\nprint(1)\nprint(2)。\n", s.Buffered())
}

func TestSegmenter_TextBeforeFence(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	units := s.Feed("Hello```python\ncode\n```\n")
	assert.Equal(t, []string{"Hello\n", "```python\ncode\n```\n"}, units)
	assert.Empty(t, s.Buffered())
}

func TestSegmenter_FenceWithoutTrailingNewline(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	assert.Equal(t, []string{"```\nx\n```\n"}, s.Feed("```\nx\n```"))
	assert.Equal(t, []string{"好的。"}, s.Feed("好的。"))
	assert.Empty(t, s.Buffered())
}

func TestSegmenter_FenceNewlineNotRepeated(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	assert.Equal(t, []string{"```\nx\n```\n"}, s.Feed("```\nx\n```"))
	assert.Equal(t, []string{"好的。"}, s.Feed("\n好的。"))
	assert.Empty(t, s.Buffered())
}

func TestCut_ClosedFenceAtEndOfBuffer(t *testing.T) {
	t.Parallel()
	unit, rest, ok := murmur.Cut("```python\ncode\n```", murmur.DefaultThreshold, murmur.DefaultWindow)
	require.True(t, ok)
	assert.Equal(t, "```python\ncode\n```\n", unit)
	assert.Empty(t, rest)
}

func TestSegmenter_FenceIgnoresInnerPunctuation(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	units := s.Feed("```\n第一句。第二句！\n```\n")
	assert.Equal(t, []string{"```\n第一句。第二句！\n```\n"}, units)
}

func TestSegmenter_TableWaitsForFollowingLine(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	table := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	assert.Empty(t, s.Feed(table))

	units := s.Feed("Done")
	assert.Equal(t, []string{table}, units)
	assert.Equal(t, "Done", s.Buffered())
}

func TestSegmenter_TableAfterText(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	units := s.Feed("结果如下：\n| a |\n| 1 |\n好。")
	assert.Equal(t, []string{"结果如下：\n", "| a |\n| 1 |\n", "好。"}, units)
}

func TestSegmenter_CompactTable(t *testing.T) {
	t.Parallel()
	text := "|a|b|\n|-|-|\n|1|2|\nDone"
	want := []string{"|a|b|\n|-|-|\n|1|2|\n"}

	t.Run("whole", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter()
		assert.Equal(t, want, s.Feed(text))
		assert.Equal(t, "Done", s.Buffered())
	})

	t.Run("one rune at a time", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter()
		var units []string
		for _, r := range text {
			units = append(units, s.Feed(string(r))...)
		}
		assert.Equal(t, want, units)
		assert.Equal(t, "Done", s.Buffered())
	})
}

// When text precedes both a table and a fence, the earliest marker decides
// which block comes next and the text ahead of it is emitted first.
func TestSegmenter_EarliestMarkerWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "table first",
			in:   "Look\n|a|\n```\nc\n```\nok",
			want: []string{"Look\n", "|a|\n", "```\nc\n```\n", "ok"},
		},
		{
			name: "fence first",
			in:   "Look ```\n|a|\n```\nok",
			want: []string{"Look \n", "```\n|a|\n```\n", "ok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, feedAll(murmur.NewSegmenter(), tt.in))
			assert.Equal(t, tt.want, feedRunes(murmur.NewSegmenter(), tt.in))
		})
	}
}

func TestSegmenter_SecondaryBoundaryAfterThreshold(t *testing.T) {
	t.Parallel()
	t.Run("below threshold", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(5))
		assert.Empty(t, s.Feed("一二，三四"))
	})

	t.Run("at threshold", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(5))
		assert.Equal(t, []string{"一二三四五六，"}, s.Feed("一二三四五六，七"))
		assert.Equal(t, "七", s.Buffered())
	})
}

func TestSegmenter_ASCIIPunctuationNeedsSpace(t *testing.T) {
	t.Parallel()
	t.Run("followed by space", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(0))
		assert.Equal(t, []string{"Hello world."}, s.Feed("Hello world. Next"))
		assert.Equal(t, " Next", s.Buffered())
	})

	t.Run("inside a number", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(0))
		assert.Equal(t, []string{"v1.2 ", "is "}, s.Feed("v1.2 is out"))
		assert.Equal(t, "out", s.Buffered())
	})

	t.Run("at end of buffer", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(0))
		assert.Empty(t, s.Feed("end."))
		assert.Equal(t, []string{"end."}, s.Feed(" "))
	})
}

func TestSegmenter_SpaceAfterThreshold(t *testing.T) {
	t.Parallel()
	t.Run("plain words", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("word ", 24)
		unit, rest, ok := murmur.Cut(text, murmur.DefaultThreshold, murmur.DefaultWindow)
		require.True(t, ok)
		assert.Equal(t, strings.Repeat("word ", 11), unit)
		assert.Equal(t, text, unit+rest)
	})

	t.Run("secondary mark preferred", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(5), murmur.WithWindow(20))
		assert.Equal(t, []string{"one two three,"}, s.Feed("one two three, four five"))
		assert.Equal(t, " four five", s.Buffered())
	})

	t.Run("below threshold", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(20))
		assert.Empty(t, s.Feed("one two three"))
	})
}

func TestCut_LeadingWhitespaceNotCounted(t *testing.T) {
	t.Parallel()
	buf := strings.Repeat("\n", 150) + "hello"
	unit, rest, ok := murmur.Cut(buf, murmur.DefaultThreshold, murmur.DefaultWindow)
	assert.False(t, ok)
	assert.Empty(t, unit)
	assert.Equal(t, buf, rest)
}

func TestSegmenter_LongTextWithoutBoundary(t *testing.T) {
	t.Parallel()
	t.Run("cuts at first space past threshold", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(2), murmur.WithWindow(3))
		assert.Equal(t, []string{"ab ", "cdefg"}, s.Feed("ab cdefgh"))
		assert.Equal(t, "h", s.Buffered())
	})

	t.Run("hard cut without space", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(2), murmur.WithWindow(3))
		assert.Equal(t, []string{"abcde"}, s.Feed("abcdefgh"))
		assert.Equal(t, "fgh", s.Buffered())
	})

	t.Run("counts grapheme clusters", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter(murmur.WithThreshold(1), murmur.WithWindow(1))
		// e + combining acute accent is a single cluster.
		assert.Equal(t, []string{"e\u0301x"}, s.Feed("e\u0301xy"))
	})
}

func TestSegmenter_FragmentationDoesNotChangeUnits(t *testing.T) {
	t.Parallel()
	text := "今天天气很好。我们来看代码：```go\nfmt.Println(1)\n```\n" +
		"然后是表格：\n| a | b |\n|---|---|\n| 1 | 2 |\n结束了！Trailing text"
	want := []string{
		"今天天气很好。",
		"我们来看代码：\n",
		"```go\nfmt.Println(1)\n```\n",
		"然后是表格：\n",
		"| a | b |\n|---|---|\n| 1 | 2 |\n",
		"结束了！",
		"Trailing text",
	}
	assert.Equal(t, want, feedAll(murmur.NewSegmenter(), text))
	assert.Equal(t, want, feedRunes(murmur.NewSegmenter(), text))
}

func TestSegmenter_FragmentationLongEnglish(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("The quick brown fox jumps over the lazy dog, again and again. ", 6)
	opts := []murmur.SegmenterOption{murmur.WithThreshold(20), murmur.WithWindow(30)}
	whole := feedAll(murmur.NewSegmenter(opts...), text)
	split := feedRunes(murmur.NewSegmenter(opts...), text)
	assert.Equal(t, strings.TrimRight(text, " "), strings.TrimRight(strings.Join(whole, ""), " "))
	assert.Equal(t, strings.Join(whole, ""), strings.Join(split, ""))
	for _, u := range append(whole, split...) {
		assert.NotEmpty(t, strings.TrimSpace(u))
	}
}

func TestSegmenter_Flush(t *testing.T) {
	t.Parallel()
	t.Run("returns remainder", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter()
		s.Write("unfinished")
		rest, ok := s.Flush()
		require.True(t, ok)
		assert.Equal(t, "unfinished", rest)
		assert.Empty(t, s.Buffered())
	})

	t.Run("drops whitespace", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter()
		assert.Empty(t, s.Feed("  \n"))
		_, ok := s.Flush()
		assert.False(t, ok)
	})

	t.Run("emits open fence", func(t *testing.T) {
		t.Parallel()
		s := murmur.NewSegmenter()
		s.Write("```\nunclosed")
		rest, ok := s.Flush()
		require.True(t, ok)
		assert.Equal(t, "```\nunclosed", rest)
	})
}

func TestSegmenter_Reset(t *testing.T) {
	t.Parallel()
	s := murmur.NewSegmenter()
	s.Write("pending")
	s.Reset()
	assert.Empty(t, s.Buffered())
	_, ok := s.Flush()
	assert.False(t, ok)
}

func TestCut_WhitespaceOnly(t *testing.T) {
	t.Parallel()
	_, rest, ok := murmur.Cut(" \n\t", murmur.DefaultThreshold, murmur.DefaultWindow)
	assert.False(t, ok)
	assert.Equal(t, " \n\t", rest)
}
