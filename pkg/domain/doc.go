/*
Package domain contains the core models of the eligibility conversation.

It defines the entities the dialogue state machine works on: the Session that
owns collected facts and the transcript, the immutable Turn, the Outcome a step
produces and the Verdict computed once all facts are known. This package is
kept pure and free of I/O, persistence and rendering concerns.

# Key Entities

  - Session: Per-conversation state (id, state tag, facts, turns, verdict).
  - Turn: One utterance in the transcript (seq, role, text, timestamp).
  - FactName / Facts: The three facts collected from the user.
  - Outcome: Structured result of a step (ask, clarify, verdict, ended).
  - Verdict: Eligibility decision plus the ordered list of failed rules.
*/
package domain
