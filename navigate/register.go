package navigate

import "github.com/MaaXYZ/maa-framework-go/v4"

var (
	_ maa.CustomRecognitionRunner = &ScoutWhereAmIRecognition{}
	_ maa.CustomActionRunner      = &ScoutCalibrateTwoPointAction{}
	_ maa.CustomActionRunner      = &ScoutCalibrateDirectionsAction{}
	_ maa.CustomActionRunner      = &ScoutGoToAction{}
	_ maa.CustomActionRunner      = &ScoutSearchAreaAction{}
	_ maa.CustomActionRunner      = &ScoutSnapshotAction{}
)

// Register registers all custom components for the navigate package
func Register() {
	maa.AgentServerRegisterCustomRecognition("ScoutWhereAmI", &ScoutWhereAmIRecognition{})
	maa.AgentServerRegisterCustomAction("ScoutCalibrateTwoPoint", &ScoutCalibrateTwoPointAction{})
	maa.AgentServerRegisterCustomAction("ScoutCalibrateDirections", &ScoutCalibrateDirectionsAction{})
	maa.AgentServerRegisterCustomAction("ScoutGoTo", &ScoutGoToAction{})
	maa.AgentServerRegisterCustomAction("ScoutSearchArea", &ScoutSearchAreaAction{})
	maa.AgentServerRegisterCustomAction("ScoutSnapshot", &ScoutSnapshotAction{})
}
