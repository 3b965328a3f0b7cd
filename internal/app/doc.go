// Package app contains the core application logic behind modelctl. It
// defines the App struct, its configuration and lifecycle: load settings and
// metamodel definitions, open a session, and describe types and dispatcher
// paths. It is decoupled from any specific entrypoint.
package app
