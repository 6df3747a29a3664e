package domain

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	OutcomeAskFact OutcomeKind = "ask_fact"
	OutcomeClarify OutcomeKind = "clarify"
	OutcomeVerdict OutcomeKind = "verdict"
	OutcomeEnded   OutcomeKind = "ended"
)

// Clarification explains why an answer could not be turned into a fact.
type Clarification string

const (
	ClarifyEmpty         Clarification = "empty"
	ClarifyNotNumeric    Clarification = "not_numeric"
	ClarifyInvalidFormat Clarification = "invalid_format"
	ClarifyOutOfRange    Clarification = "out_of_range"
	ClarifyAmbiguous     Clarification = "ambiguous"
)

// EndReason explains why a conversation no longer accepts facts.
type EndReason string

const (
	EndCompleted EndReason = "completed"
	EndAborted   EndReason = "aborted"
)

// Outcome is the structured result of one dialogue step.
// Only the fields relevant to Kind are set.
type Outcome struct {
	Kind OutcomeKind

	// Fact is set for OutcomeAskFact and OutcomeClarify.
	Fact FactName

	// Clarification is set for OutcomeClarify.
	Clarification Clarification

	// Verdict is set for OutcomeVerdict.
	Verdict *Verdict

	// EndReason is set for OutcomeEnded.
	EndReason EndReason

	// First is true for the opening question of a session.
	First bool
}

// AskFact asks the user for a fact.
func AskFact(name FactName) Outcome {
	return Outcome{Kind: OutcomeAskFact, Fact: name}
}

// Clarify asks the user to repeat a fact that could not be understood.
func Clarify(name FactName, reason Clarification) Outcome {
	return Outcome{Kind: OutcomeClarify, Fact: name, Clarification: reason}
}

// VerdictOutcome reports the final eligibility decision.
func VerdictOutcome(v Verdict) Outcome {
	return Outcome{Kind: OutcomeVerdict, Verdict: &v}
}

// Ended reports that the conversation is over.
func Ended(reason EndReason) Outcome {
	return Outcome{Kind: OutcomeEnded, EndReason: reason}
}

// Final reports whether no further fact-collecting input is accepted after this outcome.
func (o Outcome) Final() bool {
	return o.Kind == OutcomeVerdict || o.Kind == OutcomeEnded
}
