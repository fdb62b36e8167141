package hooks

// PropsKey is the props entry under which the renderer passes the
// active Scope to a component. Underscore-prefixed props never reach
// rendered attributes.
const PropsKey = "_hooks"

// FromProps extracts the render scope the renderer placed in props.
// Components call it at the top of their render function:
//
//	func CounterPage(props map[string]any) *markup.Node {
//	    sc := hooks.FromProps(props)
//	    count, setCount := hooks.UseState(sc, 0)
//	    ...
//	}
//
// It returns nil when the component is invoked outside a render scope.
func FromProps(props map[string]any) *Scope {
	sc, _ := props[PropsKey].(*Scope)
	return sc
}
