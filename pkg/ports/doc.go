/*
Package ports defines the driven ports (interfaces) of the eligibility chatbot.

These interfaces decouple the conversation core from external implementations,
allowing it to work with various storage backends and response strategies.

# Key Interfaces

  - TranscriptStore: Append-only persistence of session turns.
  - Renderer: Turns a structured Outcome into display text.
  - TextGenerator: A text-generation service (local language model).
*/
package ports
