// Command steeple publishes videos from a cloud storage folder to a video
// platform, one record per invocation. Run `steeple run` from cron or a
// systemd timer; use the records subcommands to inspect the catalog.
package main
