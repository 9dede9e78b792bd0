// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Their collaborators are passed in
// through constructors; nothing is looked up from ambient state.
package services
