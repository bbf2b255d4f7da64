package repository

import "testing"

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", "name", " ", "slug")
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != `(name LIKE ? ESCAPE '\' OR slug LIKE ? ESCAPE '\')` {
		t.Fatalf("unexpected sqlite condition: %s", condition)
	}

	condition, _ = buildLikeConditionByDialect("postgres", "code")
	if condition != `(code ILIKE ? ESCAPE '\')` {
		t.Fatalf("unexpected postgres condition: %s", condition)
	}

	condition, argCount = buildLikeConditionByDialect("sqlite")
	if condition != "" || argCount != 0 {
		t.Fatalf("empty columns should yield empty condition, got %q/%d", condition, argCount)
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"spring":   "%spring%",
		" 50%off ": `%50\%off%`,
		"a_b":      `%a\_b%`,
	}
	for in, want := range cases {
		if got := containsPattern(in); got != want {
			t.Fatalf("pattern for %q want %q got %q", in, want, got)
		}
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%x%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%x%" {
			t.Fatalf("args[%d] want %%x%% got %v", idx, arg)
		}
	}
}
