package main

import "github.com/wallkit/wallkit/cmd/wallkit/commands"

func main() {
	commands.Execute()
}
