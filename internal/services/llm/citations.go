package llm

import (
	"strings"

	"github.com/warmstack/warm/internal/models"
	"google.golang.org/genai"
)

// ExtractWebCitations pulls web source attributions out of a response
// candidate's grounding metadata, preserving chunk order. Malformed or
// missing metadata yields an empty list, never an error.
func ExtractWebCitations(candidate *genai.Candidate) []models.SourceCitation {
	if candidate == nil || candidate.GroundingMetadata == nil {
		return nil
	}

	var sources []models.SourceCitation
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = "Source"
		}
		sources = append(sources, models.SourceCitation{
			Title: title,
			URL:   chunk.Web.URI,
		})
	}
	return sources
}

// ExtractFileCitations pulls file-search citation spans out of a response
// candidate's grounding metadata, in support order. Each span resolves its
// source title by scanning the support's chunk indices into the flat chunk
// list and taking the first populated retrieved-context title; absent that,
// the title defaults to "Document". Malformed supports are skipped.
func ExtractFileCitations(candidate *genai.Candidate) []models.FileCitation {
	if candidate == nil || candidate.GroundingMetadata == nil {
		return nil
	}
	gm := candidate.GroundingMetadata

	var citations []models.FileCitation
	for _, support := range gm.GroundingSupports {
		if support == nil || support.Segment == nil {
			continue
		}

		title := "Document"
		for _, idx := range support.GroundingChunkIndices {
			if idx < 0 || int(idx) >= len(gm.GroundingChunks) {
				continue
			}
			chunk := gm.GroundingChunks[idx]
			if chunk != nil && chunk.RetrievedContext != nil && chunk.RetrievedContext.Title != "" {
				title = chunk.RetrievedContext.Title
				break
			}
		}

		citations = append(citations, models.FileCitation{
			SourceTitle: title,
			TextSegment: strings.TrimSpace(support.Segment.Text),
			StartIndex:  support.Segment.StartIndex,
			EndIndex:    support.Segment.EndIndex,
		})
	}
	return citations
}
