package timing

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosWindowStart fires after the deadline of a window is fixed and
// before the window's activity begins.
var HookPosWindowStart = &HookPos{Name: "WindowStart"}

// HookPosWindowEnd fires once the window has expired.
var HookPosWindowEnd = &HookPos{Name: "WindowEnd"}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Window Window

	// Stats is only filled at HookPosWindowEnd of active windows.
	Stats ActivityStats
}

// Hook is a short piece of program that is invoked around every window.
// Hooks run on the transmitting thread, so their cost is part of the gap
// between two windows.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
	InvokeHook(ctx HookCtx)
}

// HookableBase provides the hook list for types that implement Hookable.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates a HookableBase object.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook. Hooks must be registered before the run
// starts and cannot be removed.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, existing := range h.hookList {
		if existing == hook {
			panic("duplicated hook")
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook triggers the registered Hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
