// Package runtime holds the workflow engine internals: the corpus store, the
// planner and the sequential executor. The public facade lives in the root
// weaver package; these types do not take locks and assume the caller does.
package runtime
