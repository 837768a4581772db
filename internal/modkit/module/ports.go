package module

import "reflect"

// PortSet is whatever a module hands out from Ports, usually a struct of interfaces
type PortSet = any

// PortsOf finds T on m's ports: the value itself, or the first exported field
// of a struct (or pointer to struct) that implements T
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if v, ok := p.(T); ok && p != nil {
		return v, true
	}
	rv := reflect.Indirect(reflect.ValueOf(p))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for wiring code, it panics naming the module
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
