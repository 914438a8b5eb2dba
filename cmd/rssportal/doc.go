// Command rssportal runs the portal pipeline by hand: fetch, score, publish,
// cleanup, a full refresh, feed management and store statistics.
//
// It reads the same environment as the API and the worker. Logs go to
// stderr; tables and JSON go to stdout.
package main
