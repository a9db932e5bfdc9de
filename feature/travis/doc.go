// Package travis collects CI build logs of an organization's repositories.
//
// A collection is three chained fan-out groups: build counts per active
// repository, the finished build at each offset, and the logs of each
// build. Logs are cleaned of escape sequences and non-ASCII bytes and stored
// as one document per build id.
package travis
