package analytics

import (
	"encoding/json"
	"math"

	"github.com/Techtees/civicpro/internal/models"
)

// BillVote is one politician's vote entry on a compared bill. Missing
// records are synthesized as Absent.
type BillVote struct {
	PoliticianID string      `json:"politicianId"`
	Vote         models.Vote `json:"vote"`
}

// BillComparison is the per-bill result of a voting alignment computation.
type BillComparison struct {
	BillID  string       `json:"billId"`
	Bill    *models.Bill `json:"bill"`
	Votes   []BillVote   `json:"votes"`
	Aligned bool         `json:"aligned"`
}

// AlignmentPercent is an integer percentage that may be undefined. An empty
// common-bill set has no alignment at all, which must not be confused with
// 0% (total disagreement), so the undefined case serializes as "N/A".
type AlignmentPercent struct {
	Value int
	Valid bool
}

// MarshalJSON writes the percentage, or the string "N/A" when undefined.
func (p AlignmentPercent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts either the percentage or "N/A".
func (p *AlignmentPercent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = AlignmentPercent{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = AlignmentPercent{Value: v, Valid: true}
	return nil
}

// AlignVotes compares two or more politicians' voting records.
//
// The "common bills" set is the union of bill ids appearing in any input
// politician's records; a politician with no record on a bill in that set is
// shown as Absent. A bill is aligned when every politician's entry,
// synthesized Absent included, is identical. When the same politician holds
// several records for one bill, the last in the given slice order wins,
// which is creation order when the records come from storage.
//
// Bills appear in the result in first-appearance order over the politicians
// and their records, so output is deterministic for a given store state.
func AlignVotes(politicianIDs []string, recordsByPolitician map[string][]models.VotingRecord, bills map[string]*models.Bill) ([]BillComparison, AlignmentPercent) {
	var billOrder []string
	seen := map[string]bool{}
	votes := make(map[string]map[string]models.Vote, len(politicianIDs))

	for _, pid := range politicianIDs {
		votes[pid] = map[string]models.Vote{}
		for _, record := range recordsByPolitician[pid] {
			if !seen[record.BillID] {
				seen[record.BillID] = true
				billOrder = append(billOrder, record.BillID)
			}
			votes[pid][record.BillID] = record.Vote
		}
	}

	comparisons := make([]BillComparison, 0, len(billOrder))
	aligned := 0
	for _, billID := range billOrder {
		entry := BillComparison{
			BillID:  billID,
			Bill:    bills[billID],
			Votes:   make([]BillVote, 0, len(politicianIDs)),
			Aligned: true,
		}
		for i, pid := range politicianIDs {
			vote, ok := votes[pid][billID]
			if !ok {
				vote = models.VoteAbsent
			}
			entry.Votes = append(entry.Votes, BillVote{PoliticianID: pid, Vote: vote})
			if i > 0 && vote != entry.Votes[0].Vote {
				entry.Aligned = false
			}
		}
		if entry.Aligned {
			aligned++
		}
		comparisons = append(comparisons, entry)
	}

	if len(comparisons) == 0 {
		return comparisons, AlignmentPercent{}
	}
	percent := int(math.Round(float64(aligned) / float64(len(comparisons)) * 100))
	return comparisons, AlignmentPercent{Value: percent, Valid: true}
}
