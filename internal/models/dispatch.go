package models

import "fmt"

// Rep selects the electronic representation carried through a run.
type Rep int

const (
	Diabatic  Rep = 0
	Adiabatic Rep = 1
)

func (r Rep) String() string {
	switch r {
	case Diabatic:
		return "diabatic"
	case Adiabatic:
		return "adiabatic"
	}
	return fmt.Sprintf("rep(%d)", int(r))
}

// MinTag and MaxTag bound the recognized model tags.
const (
	MinTag = 1
	MaxTag = 4
)

// ErrUnsupportedModel is returned for tags outside [MinTag, MaxTag].
type ErrUnsupportedModel int

func (e ErrUnsupportedModel) Error() string {
	return fmt.Sprintf("models: unsupported model tag %d (want %d..%d)", int(e), MinTag, MaxTag)
}

// Func evaluates a model at one trajectory's coordinate.
type Func func(x float64) (*Output, error)

// Compute dispatches on the model tag, evaluates the model at x and stamps
// the representation flag onto the result.
func Compute(tag int, x float64, p Params, rep Rep) (*Output, error) {
	var o *Output
	switch tag {
	case 1:
		o = Model1(x, p)
	case 2:
		o = Model2(x, p)
	case 3:
		o = Model3(x, p)
	case 4:
		o = Model4(x, p)
	default:
		return nil, ErrUnsupportedModel(tag)
	}
	o.Rep = rep
	return o, nil
}

// Bind fixes the tag, parameters and representation, returning a Func for
// the Hamiltonian hierarchy to call per trajectory.
func Bind(tag int, p Params, rep Rep) (Func, error) {
	if tag < MinTag || tag > MaxTag {
		return nil, ErrUnsupportedModel(tag)
	}
	return func(x float64) (*Output, error) {
		return Compute(tag, x, p, rep)
	}, nil
}
