package syncps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pollere/DNMP/pkg/wirename"
)

func TestPendingSweepDropsExpiredAndSatisfied(t *testing.T) {
	pit := newPendingInterestTable()
	expired := wirename.New("sync", "expired")
	satisfied := wirename.New("sync", "satisfied")
	stillWaiting := wirename.New("sync", "waiting")

	pit.add(expired, time.Now().Add(-time.Second))
	pit.add(satisfied, time.Now().Add(time.Minute))
	pit.add(stillWaiting, time.Now().Add(time.Minute))

	pit.sweep(time.Now(), func(n wirename.Name) bool {
		return n.Equal(satisfied)
	})

	assert.Len(t, pit.entries, 1)
	_, ok := pit.entries[stillWaiting.Key()]
	assert.True(t, ok)
}
