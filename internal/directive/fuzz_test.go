package directive

import (
	"strings"
	"testing"
)

func FuzzParseLine(f *testing.F) {
	seeds := []string{
		"DENY file deletion",
		"REQUIRE backward compatibility WITH api/v1/",
		"ALLOW file modification WITHIN",
		"ALLOW x IF y WITHIN z",
		"WITHIN WITHIN WITHIN",
		"ALLOW IF IF IF",
		"DENY café",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		d, err := ParseLine(line, 1)
		if err != nil {
			return
		}
		if d.Action == "" {
			t.Fatalf("parsed directive with empty action from %q", line)
		}
		if _, target, ok := d.Qualifier.Get(); ok && target == "" {
			t.Fatalf("present qualifier with empty target from %q", line)
		}
		if cond, ok := d.Condition.Get(); ok && cond == "" {
			t.Fatalf("present condition with empty text from %q", line)
		}
	})
}
