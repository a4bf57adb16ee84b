// Package http provides HTTP handlers and middleware for the scheduler API.
//
// The router exposes the following endpoints:
//   - GET /professionals, POST /professionals, GET /professionals/{id},
//     DELETE /professionals/{id}: directory management for professionals.
//     Deletion deactivates the record instead of removing it.
//   - GET /clients, POST /clients, GET /clients/{id}: client directory.
//   - GET /partners, POST /partners, GET /partners/{id}: partner directory.
//   - GET /professionals/{id}/templates, POST /professionals/{id}/templates:
//     weekly availability templates exchanging the `templateDTO` payload in
//     availability_handler.go.
//   - PUT /templates/{id}, DELETE /templates/{id}: template update and
//     deactivation.
//   - GET /professionals/{id}/exceptions, POST /professionals/{id}/exceptions,
//     DELETE /exceptions/{id}: date-range availability overrides.
//   - GET /professionals/{id}/slots?from=...&to=...&duration=...: the free
//     bookable slots computed from templates, exceptions and existing
//     appointments.
//   - POST /appointments: a client's booking request.
//   - GET /appointments/{id}: appointment detail with participants.
//   - POST /appointments/{id}/approve, /reject, /cancel, /complete, /act:
//     lifecycle transitions driven by the professional.
//   - GET /appointments/{id}/participants, POST /appointments/{id}/participants:
//     list and invite participants.
//   - POST /participants/{id}/response: a participant's answer to an
//     invitation (accept, decline or tentative).
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
