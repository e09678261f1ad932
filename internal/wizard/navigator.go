package wizard

import (
	"net/url"
	"strconv"
	"sync"
)

// StepParam is the query parameter holding the current step.
const StepParam = "step"

// URLNavigator keeps the step in the query string of a shareable URL.
type URLNavigator struct {
	mu      sync.Mutex
	loc     url.URL
	listing string
	left    bool
}

// NewURLNavigator parses location. listing is where Leave sends the user.
func NewURLNavigator(location, listing string) (*URLNavigator, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	return &URLNavigator{loc: *u, listing: listing}, nil
}

func (n *URLNavigator) Step() (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v := n.loc.Query().Get(StepParam)
	if v == "" {
		return 0, false
	}
	step, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return step, true
}

func (n *URLNavigator) SetStep(step int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := n.loc.Query()
	q.Set(StepParam, strconv.Itoa(step))
	n.loc.RawQuery = q.Encode()
}

func (n *URLNavigator) Leave() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.left = true
}

// Location returns the current URL, or the listing once Leave was called.
func (n *URLNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.left {
		return n.listing
	}
	return n.loc.String()
}

// Left reports whether Leave was called.
func (n *URLNavigator) Left() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.left
}
