package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackBeforeSave(t *testing.T) {
	cases := []struct {
		name   string
		rating int
		want   int
	}{
		{"in range", 4, 4},
		{"negative clamps to zero", -3, 0},
		{"above five clamps to five", 11, 5},
		{"boundary low", 0, 0},
		{"boundary high", 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Feedback{UserID: 1, Feedback: "Great platform", Rating: tc.rating}
			require.NoError(t, f.BeforeSave(nil))
			assert.Equal(t, tc.want, f.Rating)
			assert.NotEmpty(t, f.ID, "missing id is generated")
		})
	}
}

func TestFeedbackBeforeSaveKeepsExistingID(t *testing.T) {
	f := Feedback{ID: "existing-id", UserID: 1, Rating: 3}
	require.NoError(t, f.BeforeSave(nil))
	assert.Equal(t, "existing-id", f.ID)
}
