// Package main provides the entry point for the BanDesk service.
// It initializes and runs a web server using the Fiber framework that lets
// venue operators manage ban records, per-place approvals, violations and the
// audit history behind them through a REST API. The application uses gorm for
// data persistence and enforces a role-scoped approval workflow on every
// state change.
package main
