// Package cli implements repoctl, the operator command line for the repo
// store: listing, inspecting, adding, editing, removing and watching repos.
package cli
