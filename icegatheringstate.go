package rtcpeer

// ICEGatheringState indicates the progress of candidate gathering inside the
// wrapped engine.
type ICEGatheringState int

const (
	// ICEGatheringStateNew indicates gathering has not started.
	ICEGatheringStateNew ICEGatheringState = iota + 1

	// ICEGatheringStateGathering indicates gathering is in progress.
	ICEGatheringStateGathering

	// ICEGatheringStateComplete indicates all candidates have been gathered.
	ICEGatheringStateComplete
)

func (s ICEGatheringState) String() string {
	switch s {
	case ICEGatheringStateNew:
		return "new"
	case ICEGatheringStateGathering:
		return "gathering"
	case ICEGatheringStateComplete:
		return "complete"
	default:
		return unknownStr
	}
}
