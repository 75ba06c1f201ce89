package signal

type Context interface {
	State() State
	Page() string
}

func NewContext(state State, page string) Context {
	return staticContext{state, page}
}

type staticContext struct {
	state State
	page  string
}

func (this staticContext) State() State {
	return this.state
}

func (this staticContext) Page() string {
	return this.page
}
