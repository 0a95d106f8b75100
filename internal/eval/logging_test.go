package eval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tliron/commonlog"

	"nickandperla.net/tinyjs/internal/store"
)

// recordingLogger keeps Debug and Info lines and passes everything else on.
type recordingLogger struct {
	commonlog.Logger
	debug []string
	info  []string
}

func (l *recordingLogger) Debugf(format string, args ...any) {
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.info = append(l.info, fmt.Sprintf(format, args...))
}

func contains(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestLogging(t *testing.T) {
	log := &recordingLogger{Logger: commonlog.GetLogger("tinyjs.eval.test")}
	e, _ := newTestEvaluator(t, WithLogger(log), WithStore(store.NewMemory()))
	mustEval(t, e, `function inc(x) { return x + 1; }
var n = 0;
while (n < 3) { n = inc(n); }
persist("n");
load("n");`)

	for _, want := range []string{"call at line 3", "return to line 3", "loop body at line 3 replayed 3 times"} {
		if !contains(log.debug, want) {
			t.Errorf("expected debug line %q, got %v", want, log.debug)
		}
	}
	for _, want := range []string{"persisted n", "loaded n"} {
		if !contains(log.info, want) {
			t.Errorf("expected info line %q, got %v", want, log.info)
		}
	}
}
