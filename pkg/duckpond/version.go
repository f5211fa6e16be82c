package duckpond

// Version is the duckpond release version.
const Version = "0.1.0"
