package banner

import (
	"fmt"
	"runtime"
)

const banner = `
   _____       _         _____           _
  / ____|     | |       / ____|         | |
 | |  __  __ _| |_ ___ | (___  _   _ ___| |_ ___ _ __ ___
 | | |_ |/ _' | __/ _ \ \___ \| | | / __| __/ _ \ '_ ' _ \
 | |__| | (_| | ||  __/ ____) | |_| \__ \ ||  __/ | | | | |
  \_____|\__,_|\__\___||_____/ \__, |___/\__\___|_| |_| |_|
                                __/ |
                               |___/
`

// Print 打印启动横幅，包含版本信息和构建信息
func Print(version, buildTime string) {
	fmt.Print(banner)
	fmt.Printf("  Version:     %s\n", version)

	if buildTime != "" && buildTime != "unknown" {
		fmt.Printf("  Build Time:  %s\n", buildTime)
	}

	fmt.Printf("  Go Version:  %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
}
