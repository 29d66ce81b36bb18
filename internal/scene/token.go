package scene

// Token is an entity placed on a scene. X and Y are the top-left corner in
// scene pixels; Width and Height are in scene pixels before Scale.
type Token struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Scale    float64  `json:"scale"`
	Hidden   bool     `json:"hidden,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
}

// Center returns the token center in scene pixels.
func (t Token) Center() (x, y float64) {
	return 0.5*t.Scale*t.Width + t.X, 0.5*t.Scale*t.Height + t.Y
}

// HasStatus reports whether the token carries any of the given statuses.
func (t Token) HasStatus(set map[string]struct{}) bool {
	for _, s := range t.Statuses {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// DisplayName returns the token name or its id if unnamed.
func (t Token) DisplayName() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}

// Scene is a grid-based map holding tokens.
type Scene struct {
	ID           string  `json:"id"`
	Grid         float64 `json:"grid"`         // Scene pixels per grid cell
	GridDistance float64 `json:"gridDistance"` // Distance units per grid cell
	GridUnits    string  `json:"gridUnits"`    // Distance unit label
	Tokens       []Token `json:"tokens"`
}

// Token looks a token up by id.
func (s *Scene) Token(id string) (Token, bool) {
	for _, t := range s.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}

// Clone returns a deep copy so callers can read it without holding locks.
func (s *Scene) Clone() Scene {
	cp := *s
	cp.Tokens = make([]Token, len(s.Tokens))
	for i, t := range s.Tokens {
		if t.Statuses != nil {
			t.Statuses = append([]string(nil), t.Statuses...)
		}
		cp.Tokens[i] = t
	}
	return cp
}
