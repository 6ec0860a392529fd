package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{"[0,1)", Interval{0, 1, true, false}},
		{"  ( -2.5 , 3e2 ]  ", Interval{-2.5, 300, false, true}},
		{"[.5, 1.]", Interval{0.5, 1, true, true}},
		{"(1, 1)", Interval{1, 1, false, false}},
		{"[3, -1)", Interval{-1, 3, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "0,1", "[0;1]", "[a, 1]", "{0, 1}", "[0, 1", "[0, 1]]", "[1e, 2]"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrSyntax, in)
	}
	assert.Panics(t, func() { MustParse("nope") })
}

func TestContains(t *testing.T) {
	iv := MustParse("[0, 1)")
	assert.True(t, iv.Contains(0))
	assert.True(t, iv.Contains(0.5))
	assert.False(t, iv.Contains(1))
	assert.False(t, iv.Contains(-0.1))

	assert.True(t, MustParse("[2, 2]").Contains(2))
	assert.False(t, MustParse("[2, 2)").Contains(2))
	assert.True(t, MustParse("(2, 2)").IsEmpty())
	assert.False(t, MustParse("[2, 2]").IsEmpty())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[0, 1)", MustParse("[0.0, 1.0)").String())
	assert.Equal(t, "(-2.5, 1e+21]", New(1e21, -2.5, true, false).String())
	assert.InDelta(t, 3.5, MustParse("(-1, 2.5]").Len(), 1e-12)
}

func TestUnion(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"[0, 2)", "[1, 3]", "[0, 3]"},
		{"[1, 3]", "[0, 2)", "[0, 3]"},
		{"[0, 1)", "[1, 2)", "[0, 2)"},
		{"[0, 1]", "(1, 2)", "[0, 2)"},
		{"(0, 2)", "[0, 2)", "[0, 2)"},
		{"[0, 2)", "(1, 2]", "[0, 2]"},
		{"[0, 5]", "(1, 2)", "[0, 5]"},
	}
	for _, tt := range tests {
		got, err := MustParse(tt.a).Union(MustParse(tt.b))
		require.NoError(t, err, "%s ∪ %s", tt.a, tt.b)
		assert.Equal(t, tt.want, got.String(), "%s ∪ %s", tt.a, tt.b)
	}

	_, err := MustParse("[0, 1)").Union(MustParse("(1, 2]"))
	assert.ErrorIs(t, err, ErrDisjoint)
	_, err = MustParse("[0, 1]").Union(MustParse("[3, 4]"))
	assert.ErrorIs(t, err, ErrDisjoint)
}

func TestIntersect(t *testing.T) {
	got, ok := MustParse("[0, 2)").Intersect(MustParse("(1, 3]"))
	require.True(t, ok)
	assert.Equal(t, "(1, 2)", got.String())

	got, ok = MustParse("[0, 1]").Intersect(MustParse("[1, 2]"))
	require.True(t, ok)
	assert.True(t, got.Equal(Interval{1, 1, true, true}))

	_, ok = MustParse("[0, 1)").Intersect(MustParse("[1, 2]"))
	assert.False(t, ok)
	_, ok = MustParse("[0, 1]").Intersect(MustParse("[2, 3]"))
	assert.False(t, ok)
}

func TestClamp(t *testing.T) {
	iv := MustParse("(0, 1)")
	assert.Equal(t, 0.0, iv.Clamp(-3))
	assert.Equal(t, 0.25, iv.Clamp(0.25))
	assert.Equal(t, 1.0, iv.Clamp(7))
}
