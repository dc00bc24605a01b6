package validation

import "reflect"

// GinValidator adapts Engine to gin's binding.StructValidator so request
// binding and entity validation share tags and field naming.
type GinValidator struct{}

func (GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	return Engine().Struct(obj)
}

func (GinValidator) Engine() any {
	return Engine()
}
