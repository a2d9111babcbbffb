package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsConcurrentIncrements(t *testing.T) {
	var buf bytes.Buffer
	tracker := New(&buf, true)

	tracker.StartPhase("Probing candidates", 15)

	var wg sync.WaitGroup
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, 15, tracker.done)
	assert.Contains(t, buf.String(), "(15/15)")

	// Extra increments never overflow the bar
	tracker.Increment()
	assert.Equal(t, 15, tracker.done)

	tracker.Complete()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "[====================] 100%")
}

func TestDisabledTrackerOnlyPrintsInfo(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	tracker := New(&buf, false)

	tracker.StartPhase("Probing candidates", 3)
	tracker.Increment()
	tracker.Complete()
	tracker.Info("found %d subdomains", 2)

	assert.Equal(t, "found 2 subdomains\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", formatDuration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h30m", formatDuration(90*time.Minute))
}
