package agents

import "fmt"

const generatorSystemPrompt = `You are an expert software engineer. The user describes a desired change
to the source file below. Reply with a single JSON object, nothing else.

If the request needs no code change, reply:
{"type": "text", "content": "<your answer>"}

If it needs a code change, reply with a unified diff against the current
source:
{"type": "patch", "patch": "<unified diff>", "description": "<one-line summary>"}

The diff must apply cleanly to the current source exactly as given.`

const reviewerSystemPrompt = `You are an expert code reviewer who evaluates patches for quality and
correctness. Be lenient and approve reasonable changes. Focus on:
- Does the patch achieve the user's goal?
- Is the change safe and appropriate?

Reply with a single JSON object, nothing else:
{"approved": true/false, "reasoning": "<your evaluation>", "commit_message": "<suggested commit message>"}`

// GeneratorUserPrompt frames the first attempt for a user request.
func GeneratorUserPrompt(request, currentSource string) string {
	return fmt.Sprintf("Current source:\n```\n%s\n```\n\nRequest: %s", currentSource, request)
}

// ValidationRetryPrompt embeds the gate's verbatim error for the next
// generator attempt. The source is restated because earlier framed
// prompts are not part of the durable transcript.
func ValidationRetryPrompt(verbatimError, currentSource string) string {
	return fmt.Sprintf("The previous patch failed validation:\n%s\n\nCurrent source:\n```\n%s\n```\n\nProduce a corrected patch against this source.", verbatimError, currentSource)
}

// ReviewRetryPrompt embeds the reviewer's rejection reasoning for the next
// generator attempt, restating the source the patch must apply to.
func ReviewRetryPrompt(reasoning, currentSource string) string {
	return fmt.Sprintf("The reviewer rejected the previous patch:\n%s\n\nCurrent source:\n```\n%s\n```\n\nProduce an improved patch against this source.", reasoning, currentSource)
}

// HumanRejectionPrompt seeds a fresh pipeline run after a human rejected a
// diff.
func HumanRejectionPrompt(feedback, originalRequest string) string {
	return fmt.Sprintf("The previous patch was rejected with this feedback:\n%s\n\nPlease create a new patch that addresses this feedback.\n\nOriginal request: %s", feedback, originalRequest)
}

// ReviewRequestPrompt frames a validated patch for the reviewer.
func ReviewRequestPrompt(userRequest, description, patchText, patchedSource string) string {
	return fmt.Sprintf("User request: %s\n\nPatch description: %s\n\nPatch:\n```\n%s\n```\n\nResulting source:\n```\n%s\n```", userRequest, description, patchText, patchedSource)
}

// CommitMessagePrompt asks the reviewer for a fresh commit message only.
func CommitMessagePrompt(description, patchText string) string {
	return fmt.Sprintf("Suggest a commit message for this already-approved patch. Reply with the same JSON shape, approved=true.\n\nDescription: %s\n\nPatch:\n```\n%s\n```", description, patchText)
}
