package discount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Registry holds every issued code, indexed by code string. It is not safe
// for concurrent use; shop.Service serializes access.
type Registry struct {
	prefix  string
	percent decimal.Decimal
	seq     int64
	byCode  map[string]*Code
	issued  []*Code
	now     func() time.Time
}

// NewRegistry creates an empty Registry. An empty prefix or non-positive
// percent falls back to the defaults.
func NewRegistry(prefix string, percent decimal.Decimal) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !percent.IsPositive() {
		percent = decimal.NewFromInt(DefaultPercent)
	}
	return &Registry{
		prefix:  prefix,
		percent: percent,
		byCode:  make(map[string]*Code),
		now:     time.Now,
	}
}

// Generate issues the next sequential code and returns its string form,
// e.g. "UNIBLOX-0001".
func (r *Registry) Generate() string {
	r.seq++
	c := &Code{
		ID:        r.seq,
		Code:      fmt.Sprintf("%s-%04d", r.prefix, r.seq),
		Percent:   r.percent,
		CreatedAt: r.now(),
	}
	r.byCode[c.Code] = c
	r.issued = append(r.issued, c)
	return c.Code
}

// IsValid reports whether code was issued and has not been used.
func (r *Registry) IsValid(code string) bool {
	c, ok := r.byCode[code]
	return ok && !c.Used
}

// Details returns a copy of the record for code.
func (r *Registry) Details(code string) (Code, bool) {
	c, ok := r.byCode[code]
	if !ok {
		return Code{}, false
	}
	return *c, true
}

// MarkUsed flags code as used. It reports whether the call changed state;
// unknown or already used codes are left as they are.
func (r *Registry) MarkUsed(code string) bool {
	c, ok := r.byCode[code]
	if !ok || c.Used {
		return false
	}
	c.Used = true
	return true
}

// ShouldTrigger reports whether totalOrders is a positive multiple of n.
func ShouldTrigger(totalOrders, n int) bool {
	return n > 0 && totalOrders > 0 && totalOrders%n == 0
}

// TriggerCheck issues a new code iff totalOrders is a positive multiple of n.
func (r *Registry) TriggerCheck(totalOrders, n int) (string, bool) {
	if !ShouldTrigger(totalOrders, n) {
		return "", false
	}
	return r.Generate(), true
}

// Len returns the number of issued codes.
func (r *Registry) Len() int {
	return len(r.issued)
}

// Available returns the number of unused codes.
func (r *Registry) Available() int {
	n := 0
	for _, c := range r.issued {
		if !c.Used {
			n++
		}
	}
	return n
}

// List returns copies of all codes in issuance order.
func (r *Registry) List() []Code {
	out := make([]Code, len(r.issued))
	for i, c := range r.issued {
		out[i] = *c
	}
	return out
}

// Reset forgets every code and restarts the sequence.
func (r *Registry) Reset() {
	r.seq = 0
	r.byCode = make(map[string]*Code)
	r.issued = nil
}
