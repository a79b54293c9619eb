// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

// DiagnosticEvent represents a router diagnostic or anomaly.
// These are informational events that may indicate configuration issues.
//
// Diagnostic events are optional - the router functions correctly whether
// they are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any // Structured context
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// Registration diagnostics
	DiagRouteRegistered        DiagnosticKind = "route_registered"
	DiagRouteReplaced          DiagnosticKind = "route_duplicate_replaced"
	DiagHighParamCount         DiagnosticKind = "route_param_count_high"
	DiagRouteRegistrationError DiagnosticKind = "route_registration_failed"

	// Serving diagnostics
	DiagBadRequestPath     DiagnosticKind = "bad_request_path"
	DiagHandlerNotServable DiagnosticKind = "handler_not_servable"

	// Reload diagnostics
	DiagRouterReloaded DiagnosticKind = "router_reloaded"
)

// DiagnosticHandler receives diagnostic events from the router.
// Implementations may log, emit metrics, trace events, or ignore them.
//
// Example with logging:
//
//	handler := routing.DiagnosticHandlerFunc(func(e routing.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := routing.MustNew(routing.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

// emit sends a diagnostic event if a handler is configured.
func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if r.diagnostics != nil {
		r.diagnostics.OnDiagnostic(DiagnosticEvent{
			Kind:    kind,
			Message: message,
			Fields:  fields,
		})
	}
}
