package ci

const (
	platformAndroidStringConstant = "android"
	platformIOSStringConstant     = "ios"
	jobStatusRunStringConstant    = "run"
	jobStatusSkippedStringConst   = "skipped"
	androidBundlePathConstant     = "android/app/src/main/assets/lynx.bundle"
	iosBundlePathConstant         = "ios/Resources/lynx.bundle"
)

// Platform identifies a build job target.
type Platform string

// Supported platforms.
const (
	PlatformAndroid Platform = Platform(platformAndroidStringConstant)
	PlatformIOS     Platform = Platform(platformIOSStringConstant)
)

// JobStatus reports whether a planned job runs or is skipped.
type JobStatus string

// Job statuses. A platform disabled by its trigger boolean is skipped, never
// failed.
const (
	JobStatusRun     JobStatus = JobStatus(jobStatusRunStringConstant)
	JobStatusSkipped JobStatus = JobStatus(jobStatusSkippedStringConst)
)

// Job is one planned platform build. BundlePath is the fixed location the
// downloaded lynx bundle occupies inside the repository for that platform.
type Job struct {
	Platform   Platform  `yaml:"platform"`
	Status     JobStatus `yaml:"status"`
	BundlePath string    `yaml:"bundle_path"`
}

// JobPlan is the fan-out produced from one trigger. Jobs are independent and
// order-agnostic; a failure in one never cancels the other.
type JobPlan struct {
	Jobs []Job `yaml:"jobs"`
}

// Planner derives a JobPlan from validated trigger parameters.
type Planner struct{}

// Plan produces one entry per platform, honoring the trigger booleans.
func (planner Planner) Plan(parameters TriggerParameters) JobPlan {
	return JobPlan{
		Jobs: []Job{
			{Platform: PlatformAndroid, Status: statusFor(parameters.BuildAndroid), BundlePath: androidBundlePathConstant},
			{Platform: PlatformIOS, Status: statusFor(parameters.BuildIOS), BundlePath: iosBundlePathConstant},
		},
	}
}

// RunnableJobs filters the plan down to the jobs that will execute.
func (plan JobPlan) RunnableJobs() []Job {
	runnable := make([]Job, 0, len(plan.Jobs))
	for _, plannedJob := range plan.Jobs {
		if plannedJob.Status == JobStatusRun {
			runnable = append(runnable, plannedJob)
		}
	}
	return runnable
}

// BundlePathFor returns the fixed per-platform bundle destination.
func BundlePathFor(platform Platform) string {
	if platform == PlatformIOS {
		return iosBundlePathConstant
	}
	return androidBundlePathConstant
}

func statusFor(enabled bool) JobStatus {
	if enabled {
		return JobStatusRun
	}
	return JobStatusSkipped
}
