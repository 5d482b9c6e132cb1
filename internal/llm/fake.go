package llm

import (
	"context"
	"fmt"
	"sync"
)

// FakeClient returns deterministic canned answers per phase for offline runs
// and tests. Answers can be overridden per phase with Set and SetError.
type FakeClient struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   map[string]int
}

func NewFakeClient() *FakeClient {
	answers := make(map[string]string, len(fakeAnswers))
	for k, v := range fakeAnswers {
		answers[k] = v
	}
	return &FakeClient{
		answers: answers,
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Set replaces the answer for phase.
func (f *FakeClient) Set(phase, answer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[phase] = answer
}

// SetError makes every call in phase fail with err. A nil err clears it.
func (f *FakeClient) SetError(phase string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, phase)
		return
	}
	f.errs[phase] = err
}

// Calls reports how many prompts were sent for phase.
func (f *FakeClient) Calls(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[phase]
}

func (f *FakeClient) GenerateText(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[phase]++
	if err := f.errs[phase]; err != nil {
		return "", err
	}
	out, ok := f.answers[phase]
	if !ok {
		return "", fmt.Errorf("fake llm: no answer for phase %q", phase)
	}
	return out, nil
}

const fakeHTML = `<svg viewBox="0 0 200 200">
  <rect id="ocean" width="200" height="200" fill="#1e90ff"/>
  <path id="path1" d="M10,100 Q100,40 190,100" fill="transparent"/>
  <circle id="fish" cx="0" cy="0" r="8" fill="orange"/>
</svg>
<script>
  anime({
    targets: '#fish',
    translateX: anime.path('#path1')('x'),
    translateY: anime.path('#path1')('y'),
    duration: 2000,
    loop: true
  });
</script>`

var fakeAnswers = map[string]string{
	PhaseGenerateCode: "Code:\n```html\n" + fakeHTML + "\n```\n```css\n```\n```js\n```\nExplanation: a fish on a path.",
	PhaseRefineCode:   "Code:\n```html\n" + fakeHTML + "\n```\nExplanation: unchanged.",
	PhaseAnnotate: "A [fish]{orange circle #fish moving along #path1} swimming in the " +
		"[ocean]{blue rect #ocean filling the svg}",
	PhaseRefineDescription: "A [fish]{orange circle #fish animated along #path1} swimming in the " +
		"[ocean]{blue rect #ocean covering the svg}",
	PhaseSegmentCode: `<svg viewBox="0 0 200 200">
$$$
@@@
  <rect id="ocean" width="200" height="200" fill="#1e90ff"/>
@@@
$$$
@@@
  <path id="path1" d="M10,100 Q100,40 190,100" fill="transparent"/>
@@@
  <circle id="fish" cx="0" cy="0" r="8" fill="orange"/>
@@@
$$$
</svg>
<script>
@@@
  anime({
    targets: '#fish',
@@@
    translateX: anime.path('#path1')('x'),
    translateY: anime.path('#path1')('y'),
@@@
    duration: 2000,
    loop: true
  });
@@@
$$$
</script>
@@@
$$$`,
	PhaseExpandPrompt: "a blue fish with large eyes swimming straight in a blue ocean.\n///\n" +
		"a fish with bright orange scales swimming in waving paths.\n///\n" +
		"a striped tropical fish swimming slowly.\n///\n" +
		"a round fish swimming from left to right.",
	PhaseExtractParams: "orange circle\n///\nblue rect",
}
