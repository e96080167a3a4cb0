// Package vdom defines the virtual DOM that server-rendered components
// return.
//
// A component renders a tree of VNodes; the render package turns that tree
// into HTML text or into DOM nodes mounted into a platform document. The
// tree is never diffed or patched on the server: every tick re-renders a
// component from scratch.
//
//	func Greeting(name string) *vdom.VNode {
//	    return vdom.Div(vdom.Class("greeting"),
//	        vdom.H1(vdom.Textf("Hello, %s", name)),
//	    )
//	}
package vdom
