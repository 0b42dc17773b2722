// Test Type: Unit Test
// Description: Tests for event and hook report classification

package types_test

import (
	"errors"
	"testing"

	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestEventIsWarning(t *testing.T) {
	tests := []struct {
		outcome types.Outcome
		want    bool
	}{
		{types.OutcomeCreated, false},
		{types.OutcomeWritten, false},
		{types.OutcomeCopied, false},
		{types.OutcomeExcluded, false},
		{types.OutcomeInfo, false},
		{types.OutcomeFallback, true},
		{types.OutcomeWarning, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			e := types.Event{Kind: types.EventText, Outcome: tt.outcome}
			assert.Equal(t, tt.want, e.IsWarning())
		})
	}
}

func TestHookReportIsWarning(t *testing.T) {
	assert.False(t, types.HookReport{Status: types.HookSucceeded}.IsWarning())
	assert.False(t, types.HookReport{Status: types.HookSkipped}.IsWarning())
	assert.True(t, types.HookReport{Status: types.HookSkipped, Err: errors.New("missing")}.IsWarning())
	assert.True(t, types.HookReport{Status: types.HookNonZeroExit, ExitCode: 2}.IsWarning())
	assert.True(t, types.HookReport{Status: types.HookTimedOut}.IsWarning())
	assert.True(t, types.HookReport{Status: types.HookFailed}.IsWarning())
}
