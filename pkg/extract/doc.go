/*
Package extract turns free-text answers into typed fact values.

Extraction validates format and a sane domain range only. Business thresholds
(minimum age, model year, mileage limit) are applied later by the eligibility
package, so an answer like "16" for age is accepted here.

Any input that could be read in more than one way is rejected with
ErrUnrecognized rather than guessed: "25.5", "45,50", "25 o 26" and
"45 000" are all ambiguous.
*/
package extract
