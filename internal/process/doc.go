// Package process supervises the optional DDC/CI bridge helper as a
// child process of the daemon.
//
// The helper speaks to displays over DDC/CI and mirrors them onto
// MQTT; when luxd is configured to manage it, the Supervisor launches
// the binary, forwards its output into the daemon log, restarts it on
// unexpected exit (bounded by the configured attempt limit) and tears
// it down with a SIGTERM/SIGKILL escalation on shutdown.
package process
