package tracker_test

import (
	"testing"

	"github.com/brightsms/momotracker/tracker"
	"github.com/stretchr/testify/assert"
)

func Test_MapProviderStatus(t *testing.T) {
	type Test struct {
		Raw      string
		Status   tracker.Status
		Terminal bool
	}
	tests := []Test{
		{Raw: "success", Status: tracker.StatusCompleted, Terminal: true},
		{Raw: "completed", Status: tracker.StatusCompleted, Terminal: true},
		{Raw: "SUCCESS", Status: tracker.StatusCompleted, Terminal: true},
		{Raw: " Completed ", Status: tracker.StatusCompleted, Terminal: true},
		{Raw: "failed", Status: tracker.StatusFailed, Terminal: true},
		{Raw: "cancelled", Status: tracker.StatusFailed, Terminal: true},
		{Raw: "FAILED", Status: tracker.StatusFailed, Terminal: true},
		{Raw: "pending", Terminal: false},
		{Raw: "processing", Terminal: false},
		// Unknown vocabulary keeps the tracker polling instead of guessing
		{Raw: "awaiting_subscriber_pin", Terminal: false},
		{Raw: "", Terminal: false},
	}

	for _, test := range tests {
		t.Run(test.Raw, func(t *testing.T) {
			assertions := assert.New(t)

			status, terminal := tracker.MapProviderStatus(test.Raw)
			assertions.Equal(test.Terminal, terminal, "invalid terminal flag")
			assertions.Equal(test.Status, status, "invalid mapped status")
		})
	}
}

func Test_Status(t *testing.T) {
	assertions := assert.New(t)

	assertions.True(tracker.StatusCompleted.Terminal())
	assertions.True(tracker.StatusFailed.Terminal())
	assertions.False(tracker.StatusInitiating.Terminal())
	assertions.False(tracker.StatusProcessing.Terminal())
	assertions.False(tracker.StatusBackground.Terminal())

	assertions.True(tracker.StatusProcessing.Tracking())
	assertions.True(tracker.StatusBackground.Tracking())
	assertions.False(tracker.StatusInitiating.Tracking())
	assertions.False(tracker.StatusCompleted.Tracking())
	assertions.False(tracker.StatusFailed.Tracking())
}
