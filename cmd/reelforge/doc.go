// Command reelforge turns spreadsheet product rows into published short
// videos. It can run one batch immediately, serve a job submission API, or
// keep a standing schedule.
package main
