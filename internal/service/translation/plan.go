package translation

import "github.com/Taichi-iskw/lingopad/internal/model"

// Plan returns the order in which providers are attempted for a preferred method.
// The hosted preference still tries the local model first.
func Plan(preferred model.Method, localAvailable bool) []model.Method {
	var order []model.Method
	switch preferred {
	case model.MethodCloud:
		order = []model.Method{model.MethodCloud, model.MethodLocal, model.MethodHosted}
	default:
		order = []model.Method{model.MethodLocal, model.MethodHosted, model.MethodCloud}
	}

	if localAvailable {
		return order
	}

	filtered := order[:0]
	for _, m := range order {
		if m != model.MethodLocal {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
