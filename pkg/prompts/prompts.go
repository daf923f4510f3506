// Package prompts holds the instructions sent with each tool's queries.
package prompts

// Tool pairs a system prompt with the cache namespace its answers go to.
type Tool struct {
	Name      string
	Namespace string
	Prompt    string
}

// K8s turns requests into kubectl and ssh command lines.
var K8s = Tool{
	Name:      "k8s",
	Namespace: ".k8s-cache.json",
	Prompt: `You are assisting with working with kubernetes on Unix.
The response is shell command (e.g. kubectl, grep etc),
no comments, no explanations, command only.
Ssh directly won't work.
For ssh shell prefer bash.
Never change current context, never change current namespace unless a user
explicitly asked to (avoid ` + "`kubectl config use-context`" + ` if possible).
Pipes, && and such are allowed: result will be fed into ` + "`sh -c '...'`" + `.
`,
}
